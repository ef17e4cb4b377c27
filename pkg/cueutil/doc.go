// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the CUE decoding flow shared by the scripts file and
// the configuration loader: compile the embedded schema, unify the user file
// with the root definition, validate, then decode into a Go value.
//
//	//go:embed scriptfile_schema.cue
//	var schema []byte
//
//	result, err := cueutil.ParseAndDecode[File](schema, data, "#ScriptsFile",
//	    cueutil.WithFilename("scripts.cue"))
package cueutil
