// Command healthcheck runs the FieldSeal self-test and prints the
// verification report and capability description as JSON. A non-zero exit
// status means no algorithm round-tripped successfully.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	fieldseal "github.com/fieldseal/fieldseal-go"
)

func main() {
	svc := fieldseal.New()
	report := svc.Verify()

	out := struct {
		Report       *fieldseal.VerificationReport `json:"report"`
		Capabilities []fieldseal.AlgorithmInfo     `json:"capabilities"`
	}{
		Report:       report,
		Capabilities: fieldseal.Capabilities(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fatal("encode report: %v", err)
	}

	if !report.Functional {
		fatal("no algorithm is functional")
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
