// Copyright 2026 The gomonaco Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	got := Info()
	if !strings.Contains(got, Version) {
		t.Errorf("Info() = %q, missing version %q", got, Version)
	}
	if !strings.Contains(got, GitCommit) {
		t.Errorf("Info() = %q, missing commit %q", got, GitCommit)
	}
	if strings.Contains(got, "-dirty") && GitDirty != "true" {
		t.Errorf("Info() = %q marked dirty on a clean build", got)
	}
}

func TestFull(t *testing.T) {
	got := Full()
	if !strings.HasPrefix(got, Info()) {
		t.Errorf("Full() = %q, want Info() prefix %q", got, Info())
	}
	if !strings.Contains(got, runtime.Version()) {
		t.Errorf("Full() = %q, missing Go version", got)
	}
	if !strings.Contains(got, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("Full() = %q, missing platform", got)
	}
}
