//go:build !unix

package fsentry

import "io/fs"

func ownerOf(fs.FileInfo) (int, int, bool) { return 0, 0, false }

func deviceOf(fs.FileInfo) (int, int, bool) { return -1, -1, false }
