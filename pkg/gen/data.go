// Package gen contains a bunch of generic functions that will probably be in the Go std lib someday
package gen

// Return a copy of the slice
func CopySlice[T any](src []T) []T {
	dst := make([]T, len(src))
	copy(dst, src)
	return dst
}

// Remove the element at index i, by swapping the last element into its place.
// Does not preserve ordering.
func DeleteFromSliceUnordered[T any](slice []T, i int) []T {
	slice[i] = slice[len(slice)-1]
	return slice[:len(slice)-1]
}
