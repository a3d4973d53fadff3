package core

import (
	"errors"
)

var (
	/** @brief The asset container could not be recognised or parsed at all. */
	ErrUnsupportedAsset = errors.New("unsupported asset")
	/** @brief The asset parsed correctly but contains no meshes. */
	ErrEmptyAsset = errors.New("empty asset")
	/** @brief Geometry or material data in the asset is inconsistent. */
	ErrMeshBuildFailed = errors.New("mesh build failed")
)
