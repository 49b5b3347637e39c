// Package preset stores routing snapshots as JSON documents.
//
// A preset file has four fields:
//
//	{
//	  "description": "Sunday service",
//	  "routing": { "0": 2, "1": 0 },
//	  "inputs":  { "0": "CAM1", "1": "CAM2", "2": "GFX" },
//	  "outputs": { "0": "PGM", "1": "PVW" }
//	}
//
// Map keys are 0-based indices written as decimal strings. Files are
// checked against an embedded JSON schema before they are decoded; fields
// the schema does not name are ignored.
package preset
