// Package blob selects a concrete blob store backend from the environment.
package blob

import (
	"context"
	"fmt"
	"os"

	"labregistry/internal/infra/blob/core"
	"labregistry/internal/infra/blob/fs"
	"labregistry/internal/infra/blob/memory"
	"labregistry/internal/infra/blob/s3"
)

// Open selects a core.Store implementation using environment variables.
//
//	LABREGISTRY_BLOB_DRIVER: fs|s3|memory (default fs)
//	LABREGISTRY_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	(S3-specific variables documented in the s3 package)
func Open(ctx context.Context) (core.Store, error) {
	driver := os.Getenv("LABREGISTRY_BLOB_DRIVER")
	if driver == "" {
		driver = string(core.DriverFilesystem)
	}
	switch core.Driver(driver) {
	case core.DriverFilesystem:
		return fs.New(os.Getenv("LABREGISTRY_BLOB_FS_ROOT"))
	case core.DriverS3:
		return s3.OpenFromEnv(ctx)
	case core.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
