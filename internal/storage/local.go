package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Local handles on-disk staging of uploaded bundles and, when S3 is
// not configured, artifact output.
type Local struct {
	uploadDir string
	resultDir string
}

func NewLocal(uploadDir, resultDir string) (*Local, error) {
	for _, dir := range []string{uploadDir, resultDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return &Local{uploadDir: uploadDir, resultDir: resultDir}, nil
}

// SaveUpload stages an uploaded bundle and returns its path.
func (l *Local) SaveUpload(jobID string, data []byte) (string, error) {
	path := filepath.Join(l.uploadDir, jobID+".pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path, nil
}

// ReadUpload loads a staged bundle back.
func (l *Local) ReadUpload(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// SaveArtifact writes one artifact under results/{jobID}/ and returns
// its path.
func (l *Local) SaveArtifact(jobID, name string, data []byte) (string, error) {
	dir := filepath.Join(l.resultDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir results: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save artifact: %w", err)
	}
	return path, nil
}

// RemoveUpload deletes a staged bundle once the job is finished.
func (l *Local) RemoveUpload(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
