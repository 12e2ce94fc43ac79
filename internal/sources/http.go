/*
Copyright © 2024 the AeroSphere authors.
This file is part of AeroSphere.

AeroSphere is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

AeroSphere is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with AeroSphere.  If not, see <http://www.gnu.org/licenses/>.*/

package sources

import (
	"net/http"
	"time"
)

// CallTimeout is the default suspension bound for an outbound HTTP
// call per §5 ("every outbound HTTP call suspends until response or
// timeout, default 30s per call").
const CallTimeout = 30 * time.Second

// DownloadTimeout is the suspension bound for file downloads (granule
// files, gridded archives) per §5 ("120s for file downloads").
const DownloadTimeout = 120 * time.Second

// NewHTTPClient returns an *http.Client with the given timeout. Each
// adapter constructs its own client rather than sharing a package
// global, consistent with "adapters ... have no shared state."
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
