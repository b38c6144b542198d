/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"time"
)

const (
	// uschess.org rejects obvious bots, so identify as a desktop browser
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

	DefaultDetailURL = "https://www.uschess.org/msa/MbrDtlMain.php"
	DefaultSearchURL = "https://www.uschess.org/msa/MbrLst.php"

	DefaultListenAddr     = ":8080"
	DefaultMinInterval    = 2 * time.Second
	DefaultRequestTimeout = 15 * time.Second
)
