// Package cli provides terminal helpers for the splittyping command.
//
// This package includes:
//   - Output formatting (JSON, YAML, raw)
//   - Input loading for batch segmentation (text, YAML or JSON)
//   - Styled rendering of fragment schedules
//   - Application directory layout (~/.splittyping)
//
// Example usage:
//
//	frags := segment.SegmentRule(text, 0)
//	cli.Output(frags, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
