// Package value defines the format-neutral tree that every codec parses into
// and serializes from.
//
// A [Value] is one of seven kinds: [Null], [Bool], [Integer], [Float],
// [String], [Sequence], or [*Mapping]. The set is closed; codecs switch on
// the concrete type and never see anything else.
//
// Mappings keep their keys in insertion order. Setting a key that already
// exists replaces the stored value but keeps the key's original position,
// which is how duplicate keys in source documents resolve (last one wins).
//
//	m := value.NewMapping(2)
//	m.Set("name", value.String("test"))
//	m.Set("value", value.Integer(123))
//	for k, v := range m.All() {
//	    fmt.Println(k, v)
//	}
//
// Integers and floats are distinct kinds. A float that happens to hold an
// integral number is still a [Float], and [FormatFloat] renders it with a
// trailing ".0" so that text formats can tell the two apart when re-parsed.
package value
