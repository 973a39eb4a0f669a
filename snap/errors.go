// Copyright 2019, Maxim Lamare.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package snap

import "errors"

type temporaryError struct{ error }

func (e temporaryError) Unwrap() error { return e.error }

// MakeTemporary marks an error as worth retrying
func MakeTemporary(err error) error {
	return temporaryError{err}
}

// IsTemporary reports whether err was marked as worth retrying
func IsTemporary(err error) bool {
	var t temporaryError
	return errors.As(err, &t)
}

type outOfBoundsError struct{ error }

func (e outOfBoundsError) Unwrap() error { return e.error }

// MakeOutOfBounds marks an error as the subset region missing the product
func MakeOutOfBounds(err error) error {
	return outOfBoundsError{err}
}

// IsOutOfBounds reports whether err means the site fell outside the scene.
// Callers record these as out-of-bounds rows rather than failures.
func IsOutOfBounds(err error) bool {
	var o outOfBoundsError
	return errors.As(err, &o)
}
