package enhance

import "errors"

var ErrNoCredential = errors.New("llm client not configured")
