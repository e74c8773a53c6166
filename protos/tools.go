//go:build tools

package protos

// Pins codegen tool versions in go.mod.
import (
	_ "google.golang.org/grpc/cmd/protoc-gen-go-grpc"
)
