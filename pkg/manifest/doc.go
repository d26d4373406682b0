// Package manifest loads the YAML file that lists the accessors tardigrade-gen
// produces. A manifest looks like:
//
//	templates:
//	  - name: Popup
//	    source: popup/popup.html
//	    package: popup
//	    output: popup/popup_gen.go
//
// Source and output paths are relative to the manifest file.
package manifest
