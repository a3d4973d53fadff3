package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief No resource type. Files with unknown extensions are ignored. */
	ResourceTypeNone ResourceType = iota
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Model resource type (a loadable scene/mesh container). */
	ResourceTypeModel
	/** @brief Material library resource type. */
	ResourceTypeMaterial
)

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}
