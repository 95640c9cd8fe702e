// Package files manages the per-run scratch directory an upload is staged in.
package files
