// Package conformance checks that every scanning method of the engine's
// parameterized stdin test binary behaves identically.
//
// Each TestCase is run once per method selector (0 through 3). An invocation
// passes the arguments [typeCode, methodCode, format], writes the case input
// to stdin and expects exactly two lines on stdout:
//
//	<hex of the scanned value>
//	<hex of the unconsumed rest of the line>
//
// Exit status 0 means the scan succeeded and 1 that it failed; anything else
// is an abnormal exit. A method passes when its exit status matches the
// case's expectation and both decoded lines equal the expected values.
//
// # Results
//
// Nothing is accumulated in package state. Runner.RunCase returns a
// CaseResult holding one MethodResult per method, and Runner.RunSuite returns
// a SuiteResult over all cases. Callers reduce these with Pass.
//
// # Case files
//
// Besides DefaultCorpus, cases can be loaded from YAML:
//
//	cases:
//	  - name: int_partial
//	    type: int
//	    format: "{}"
//	    input: "123foo"
//	    expect_success: true
//	    parsed: "123"
//	    leftover: "foo"
//
// Files are decoded strictly and validated against an embedded CUE schema,
// so an unknown type tag is rejected when the file is loaded.
package conformance
