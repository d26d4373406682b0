// Package orchestrator wires the manifest → descriptor → accessor pipeline run
// by tardigrade-gen, keeping each stage injectable for callers that embed the
// generator.
package orchestrator
