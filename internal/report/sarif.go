package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
)

const (
	ruleMissingDependency   = "BUILDEVAL001"
	ruleExtraDependency     = "BUILDEVAL002"
	ruleMissingArtifact     = "BUILDEVAL003"
	ruleKeyDependencyAbsent = "BUILDEVAL004"
)

type sarifOutput struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

// WriteSARIF emits one SARIF 2.1.0 result per missing artifact, missing or
// extra dependency and absent key dependency.
func WriteSARIF(w io.Writer, r MetricReport, version string) error {
	rules := []sarifRule{
		{ID: ruleMissingDependency, Name: "MissingDependency", ShortDescription: sarifMessage{Text: "Golden dependency absent from the generated artifact"}},
		{ID: ruleExtraDependency, Name: "ExtraDependency", ShortDescription: sarifMessage{Text: "Generated artifact declares a dependency the golden one does not"}},
		{ID: ruleMissingArtifact, Name: "MissingArtifact", ShortDescription: sarifMessage{Text: "Artifact could not be read"}},
		{ID: ruleKeyDependencyAbsent, Name: "KeyDependencyAbsent", ShortDescription: sarifMessage{Text: "Required dependency not mentioned in the generated artifact"}},
	}

	results := []sarifResult{}
	for _, a := range r.Artifacts {
		loc := []sarifLocation{{PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{URI: filepath.ToSlash(a.Path)},
		}}}
		add := func(rule, level, text string) {
			results = append(results, sarifResult{
				RuleID:    rule,
				Level:     level,
				Message:   sarifMessage{Text: text},
				Locations: loc,
			})
		}

		if a.Skipped() {
			add(ruleMissingArtifact, "error", a.Notice)
			continue
		}
		if d := a.Dependencies; d != nil {
			for _, dep := range d.Missing.List() {
				add(ruleMissingDependency, "warning", fmt.Sprintf("%s: missing dependency %s", a.Path, dep))
			}
			for _, dep := range d.Extra.List() {
				add(ruleExtraDependency, "note", fmt.Sprintf("%s: extra dependency %s", a.Path, dep))
			}
		}
		for _, k := range a.KeyDeps {
			if !k.Found {
				add(ruleKeyDependencyAbsent, "warning", fmt.Sprintf("%s: key dependency %s not found", a.Path, k.Name))
			}
		}
	}

	if version == "" {
		version = "dev"
	}
	out := sarifOutput{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "buildeval",
						Version:        version,
						InformationURI: "https://github.com/1homsi/buildeval",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
