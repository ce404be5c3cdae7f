package main

import (
	"encoding/json"
	"fmt"
)

// JS renders x as JSON for logging.  A value that can't be marshaled
// renders as Go syntax.
func JS(x interface{}) string {
	js, err := json.Marshal(&x)
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	return string(js)
}
