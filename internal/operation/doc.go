// Package operation holds what every connector command produces and
// measures: the Result handed back to the host and the Prometheus metrics
// recorded while producing it.
//
// A Result carries the outputs prefix the host files the data under, the
// raw vendor response (verbatim JSON) and a Markdown rendering of it:
//
//	result := &operation.Result{
//	    OutputsPrefix:  "KMSAT_Account_Info_Returned",
//	    RawResponse:    resp.Body,
//	    ReadableOutput: format.TableToMarkdown("Account_Info", decoded),
//	}
//
// Metrics are collected in a per-invocation registry so a single CLI run
// can write them to a node-exporter textfile afterwards.
package operation
