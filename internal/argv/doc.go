// Package argv carries a process's command line from a follower to the
// leader.
//
// It has two halves:
//
//   - The serialization contract: [Encode] and [Decode] turn an ordered
//     argument batch into a JSON array payload and back. Decoding the
//     encoding of any batch, including the empty one, yields an equal batch.
//   - Argument retrieval: a [Source] yields the current process's arguments.
//     [ProcessSource] reads the standard argument vector; [FileSource] is the
//     degraded fallback for deployments that hand the command line over in a
//     UTF-16 cmdline.txt file. [Chain] tries sources in order.
package argv
