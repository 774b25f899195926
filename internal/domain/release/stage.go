package release

import "time"

// StageName identifies one unit of pipeline work.
type StageName string

// Pipeline stages in execution order.
const (
	StageClean   StageName = "clean"
	StageBuild   StageName = "build"
	StagePackage StageName = "package"
)

// StageResult records the outcome of a single stage run.
type StageResult struct {
	// Stage is the stage that ran.
	Stage StageName
	// Duration is how long the stage took, including its verification.
	Duration time.Duration
	// Err is the failure that stopped the stage, nil on success.
	Err error
}

// Succeeded reports whether the stage completed without error.
func (r StageResult) Succeeded() bool {
	return r.Err == nil
}

// Report converts the result into its receipt entry.
func (r StageResult) Report() StageReport {
	status := "ok"
	if r.Err != nil {
		status = "failed"
	}

	return StageReport{
		Name:     string(r.Stage),
		Status:   status,
		Duration: r.Duration.String(),
	}
}
