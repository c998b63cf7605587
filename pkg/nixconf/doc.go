// Package nixconf reads and edits nix.conf while preserving its comments
// and layout.
//
// A Document behaves like a map from setting keys to values, but keeps the
// full text of the file around. Each setting owns a record: the contiguous
// block of comment lines directly above it plus the setting line itself.
// Blank lines and comment blocks that are not followed by a setting belong
// to no key and are never touched.
//
// Setting lines are normalised on read to "key = value" (or "key =" for an
// empty value), so a freshly parsed document can already differ from its
// input; HasChanged tells the caller whether anything needs writing back.
// Everything else round-trips byte for byte.
//
//	doc, err := nixconf.Parse(data)
//	if err != nil {
//		return err
//	}
//	doc.Insert("cores", nixconf.CommentedSetting{Value: "8", Comment: "keep cores"})
//	if doc.HasChanged() {
//		return os.WriteFile(path, []byte(doc.String()), 0644)
//	}
package nixconf
