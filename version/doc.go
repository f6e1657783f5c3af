// Package version reports the build identity of the yeet binary.
//
// Version, commit and build time are injected at link time:
//
//	go build -ldflags "-X github.com/kbukum/yeet/version.Version=v0.3.0 \
//	    -X github.com/kbukum/yeet/version.Commit=$(git rev-parse --short HEAD)" ./cmd/yeet
//
// Values left empty fall back to the VCS settings embedded by the Go
// toolchain.
package version
