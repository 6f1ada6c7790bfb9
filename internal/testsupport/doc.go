// Package testsupport provides shared fixtures for package tests: temp
// configs, generated manifests and stub archiver binaries.
package testsupport
