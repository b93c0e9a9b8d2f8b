//  Copyright (c) 2023 Uber Technologies, Inc.
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

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDevelopmentLogger(t *testing.T) {
	log, err := New(true)
	require.NoError(t, err)
	require.NotNil(t, log)
	log.Debugw("development logger smoke test", "ok", true)
}

func TestNewProductionLogger(t *testing.T) {
	log, err := New(false)
	require.NoError(t, err)
	require.NotNil(t, log)
	log.Infow("production logger smoke test", "ok", true)
}

func TestNopDiscardsEverything(t *testing.T) {
	log := Nop()
	require.NotNil(t, log)
	log.Errorw("this must not panic or write anywhere visible")
}
