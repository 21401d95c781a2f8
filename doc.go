/*
Package verge_client provides a convenient interface to interact with the VergeOS REST API.

It wraps raw HTTP operations in a structured API, exposing high-level methods to manage VergeOS
resources like machines, NAS volumes, users, snapshots, and files. Each resource is available as a
sub-client that supports common CRUD operations (List, Get, GetById, Create, Update, Delete, etc.).

Long-running server-side work (tasks, VM imports, directory browses) is handled by the operation
poller: waits are interruptible through context, bounded by a PollPolicy, and report progress per
tick. File movement goes through the chunked transfer engine, which uploads in fixed 256 KiB
positioned writes and streams downloads straight to disk.

The main entry point is the UntypedVergeRest client, which is initialized using a VergeConfig
configuration struct. This configuration allows customization of connection parameters, credentials
(username/password or token), SSL behavior, request timeouts, and request/response hooks.
*/
package verge_client
