/*
Package toolchain coordinates installation of compiler releases.

Compiler versions are a per-call parameter of the compiler and analyzer
adapters. Before a version is used it must be installed exactly once; the
Installer serializes installs per version inside the process and, when a
distributed locker is configured, across replicas sharing the same host cache.
*/
package toolchain
