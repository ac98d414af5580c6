package utils

// ToPointer returns a pointer to v.
func ToPointer[T any](v T) *T {
	return &v
}
