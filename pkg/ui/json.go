package ui

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/installer"
	"github.com/arthur-debert/deftsilo/pkg/types"
)

// jsonRenderer emits one indented JSON document per call
type jsonRenderer struct {
	encoder *json.Encoder
}

func newJSON(output io.Writer) *jsonRenderer {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &jsonRenderer{encoder: encoder}
}

type jsonResult struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	Target  string `json:"target"`
	State   string `json:"state"`
	Outcome string `json:"outcome"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type jsonReport struct {
	DryRun  bool           `json:"dry_run"`
	Results []jsonResult   `json:"results"`
	Summary map[string]int `json:"summary"`
}

type jsonInstruction struct {
	Kind   string   `json:"kind"`
	Path   string   `json:"path"`
	Mode   string   `json:"mode"`
	Hashes []string `json:"hashes,omitempty"`
}

func (r *jsonRenderer) RenderReport(report *installer.Report) error {
	out := jsonReport{
		DryRun:  report.DryRun,
		Results: make([]jsonResult, 0, len(report.Results)),
		Summary: make(map[string]int),
	}
	for _, res := range report.Results {
		jr := jsonResult{
			Kind:    res.Instruction.Kind.String(),
			Path:    res.Instruction.Path,
			Target:  res.Target,
			State:   res.State.String(),
			Outcome: string(res.Outcome),
			Message: res.Message,
		}
		if res.Error != nil {
			jr.Error = res.Error.Error()
		}
		out.Results = append(out.Results, jr)
	}
	for _, c := range summaryCounts(report) {
		out.Summary[string(c.outcome)] = c.n
	}
	return r.encoder.Encode(out)
}

func (r *jsonRenderer) RenderPlan(plan *types.Plan) error {
	out := make([]jsonInstruction, 0, len(plan.Instructions))
	for _, ins := range plan.Instructions {
		out = append(out, jsonInstruction{
			Kind:   ins.Kind.String(),
			Path:   ins.Path,
			Mode:   types.FormatMode(ins.Mode),
			Hashes: ins.Hashes,
		})
	}
	return r.encoder.Encode(out)
}

func (r *jsonRenderer) RenderError(err error) error {
	if err == nil {
		return nil
	}
	obj := map[string]interface{}{
		"error": err.Error(),
		"code":  string(errors.GetErrorCode(err)),
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		obj["details"] = details
	}
	return r.encoder.Encode(obj)
}

func (r *jsonRenderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}
