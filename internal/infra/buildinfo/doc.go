// Package buildinfo exposes the version, commit and build time of the
// running binary.
//
// Release builds inject the values with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/timekeep-go/internal/infra/buildinfo.Version=v1.2.0 \
//	  -X github.com/yndnr/timekeep-go/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// Without ldflags the commit falls back to the VCS stamp recorded by the
// Go toolchain, when there is one.
package buildinfo
