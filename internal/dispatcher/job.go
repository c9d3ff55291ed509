package dispatcher

import "encoding/json"

// Job is one queued decomposition request. Exactly one of SourceKey
// (object storage) and SourcePath (staged upload) is set.
type Job struct {
	JobID             string `json:"job_id"`
	SourceKey         string `json:"source_key,omitempty"`
	SourcePath        string `json:"source_path,omitempty"`
	SourceDescription string `json:"source_description,omitempty"`
	Mode              string `json:"mode,omitempty"`
	SplitInvalid      bool   `json:"split_invalid,omitempty"`
	Engine            string `json:"engine,omitempty"`
	Attempt           int    `json:"attempt,omitempty"`
}

func (j Job) Marshal() []byte {
	b, _ := json.Marshal(j)
	return b
}

func ParseJob(data []byte) (Job, error) {
	var j Job
	err := json.Unmarshal(data, &j)
	return j, err
}
