package errors

// Constructors for the pipeline error kinds. Each returns a ClassifiedError whose
// category identifies the kind, so callers can branch with HasCategory.

// IoError reports a content file that could not be read.
func IoError(path string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryIO, "cannot read content file").
		WithContext("path", path).
		Build()
}

// PathError reports a content path that is not located under the source root.
func PathError(path, root string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryPath, "content path is not under source root").
		WithContext("path", path).
		WithContext("root", root).
		UserAction().
		Build()
}

// ParseError reports a malformed front matter block.
func ParseError(path string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryParse, "malformed front matter").
		WithContext("path", path).
		UserAction().
		Build()
}

// DataLoadError reports a malformed file in the auxiliary data directory.
func DataLoadError(path string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryData, "cannot load data file").
		WithContext("path", path).
		Fatal().
		UserAction().
		Build()
}

// TemplateLoadWarning reports a missing or unparsable templates directory.
// It is logged by the renderer and never returned from construction.
func TemplateLoadWarning(dir string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryTemplateLoad, "templates unavailable, using empty template set").
		WithContext("dir", dir).
		Warning().
		Build()
}

// TemplateError reports a missing template or a failure while executing one.
func TemplateError(name string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryTemplate, "template rendering failed").
		WithContext("template", name).
		Build()
}
