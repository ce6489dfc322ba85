// Package version reports the smartsearch build: version, commit, branch
// and build time, falling back to the module's VCS stamp when the linker
// flags were not set:
//
//	go build -ldflags "-X github.com/kbukum/smartsearch/version.Version=1.2.0" ./cmd/smartsearch
package version
