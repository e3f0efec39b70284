package conformance

// DefaultCorpus returns the built-in cases, in run order.
func DefaultCorpus() []TestCase {
	return []TestCase{
		{
			Name:             "string_word",
			Type:             ValueString,
			Format:           "{}",
			Input:            "Hello!",
			ExpectSuccess:    true,
			ExpectedParsed:   "Hello!",
			ExpectedLeftover: "",
		},
		{
			Name:             "int_whole",
			Type:             ValueInt,
			Format:           "{}",
			Input:            "123",
			ExpectSuccess:    true,
			ExpectedParsed:   "123",
			ExpectedLeftover: "",
		},
		{
			Name:             "int_no_digits",
			Type:             ValueInt,
			Format:           "{}",
			Input:            "foo",
			ExpectSuccess:    false,
			ExpectedParsed:   "",
			ExpectedLeftover: "foo",
		},
		{
			Name:             "int_partial",
			Type:             ValueInt,
			Format:           "{}",
			Input:            "123foo",
			ExpectSuccess:    true,
			ExpectedParsed:   "123",
			ExpectedLeftover: "foo",
		},
	}
}
