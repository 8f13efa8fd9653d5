// Package util holds small helpers shared by the storage backends.
package util
