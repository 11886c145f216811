package datarecording

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/xid"
)

// runInfo rows describe the run that produced the database.
type runInfo struct {
	Property string
	Value    string
}

// runRecorder logs run metadata into the run_info table.
type runRecorder struct {
	tableName string
	recorder  DataRecorder
	entries   []runInfo
}

// Start captures the run start metadata.
func (r *runRecorder) Start() {
	startTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	r.entries = append(r.entries, runInfo{"Start Time", startTime})

	r.entries = append(r.entries, runInfo{"Run ID", xid.New().String()})

	cmd := strings.Join(os.Args, " ")
	r.entries = append(r.entries, runInfo{"Command", cmd})

	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}

	cwd := filepath.Dir(ex)
	r.entries = append(r.entries, runInfo{"Working Directory", cwd})
}

// End writes the buffered metadata along with the run end time.
func (r *runRecorder) End() {
	for _, entry := range r.entries {
		r.recorder.InsertData(r.tableName, entry)
	}

	endTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	r.recorder.InsertData(r.tableName, runInfo{"End Time", endTime})

	r.entries = nil

	r.recorder.Flush()
}

func newRunRecorder(recorder DataRecorder) *runRecorder {
	r := &runRecorder{
		tableName: "run_info",
		recorder:  recorder,
	}

	recorder.CreateTable(r.tableName, runInfo{})

	return r
}
