// Package linedesc wraps the line-descriptor module of the native library:
// line extraction (BinaryDescriptor, LSDDetector), binary descriptor
// matching (BinaryDescriptorMatcher) and the keyline drawing helpers.
//
// Every operation returns a result.Result; algorithms run entirely inside
// the native backend reached through the boundary dispatcher.
package linedesc
