// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tmpl_test

import (
	"fmt"
	"testing"
	"text/template"

	"github.com/pkg/errors"
	"github.com/gx-org/aot/base/tmpl"
)

func TestIterateFunc(t *testing.T) {
	got, err := tmpl.IterateFunc([]string{"a", "b"}, func(i int, s string) (string, error) {
		return fmt.Sprintf("%d:%s", i, s), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := "0:a\n1:b"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
	if _, err := tmpl.IterateFunc([]int{1}, func(int, int) (string, error) {
		return "", errors.Errorf("failure")
	}); err == nil {
		t.Errorf("expected an error")
	}
}

func TestExec(t *testing.T) {
	tpl := template.Must(template.New("hello").Parse("hello {{.}}"))
	got, err := tmpl.Exec(tpl, "world")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello world" {
		t.Errorf("got %q but want %q", got, "hello world")
	}
}
