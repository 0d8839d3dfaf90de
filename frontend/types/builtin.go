package types

// Tag names a special meaning attached to a type through a `[...]`
// attribute. Most tags trigger checker behavior and are structurally
// transparent; only TagNoSubtype makes the type nominal.
type Tag uint8

const (
	// TagAssert marks a function whose first argument is narrowed to
	// its truthy part when the call succeeds.
	TagAssert Tag = iota
	// TagAssertNot narrows the first argument to its falsy part.
	TagAssertNot
	// TagAssertType narrows the first argument to the type named by the
	// second, as the `type` builtin spells it.
	TagAssertType
	// TagRequire marks the module loader.
	TagRequire
	// TagNoCheck skips checking a function body entirely.
	TagNoCheck
	// TagPackagePath marks the string variable feeding module
	// resolution.
	TagPackagePath
	// TagPackageCpath is tracked like TagPackagePath but never consulted
	// for source resolution.
	TagPackageCpath
	// TagStringMeta marks the table serving as the shared metatable
	// index for strings.
	TagStringMeta
	// TagSubtype only renames a type; conversions in both directions
	// remain structural.
	TagSubtype
	// TagNoSubtype makes a type nominal: nothing converts into or out of
	// it except the very same tagged type.
	TagNoSubtype
)

var tagNames = map[Tag]string{
	TagAssert:       "assert",
	TagAssertNot:    "assert_not",
	TagAssertType:   "assert_type",
	TagRequire:      "require",
	TagNoCheck:      "no_check",
	TagPackagePath:  "package_path",
	TagPackageCpath: "package_cpath",
	TagStringMeta:   "string_meta",
	TagSubtype:      "internal subtype",
	TagNoSubtype:    "internal no_subtype",
}

var tagsByName = func() map[string]Tag {
	m := make(map[string]Tag, len(tagNames))
	for tag, name := range tagNames {
		m[name] = tag
	}
	return m
}()

func (t Tag) String() string { return tagNames[t] }

// TagByName resolves an attribute name to its tag.
func TagByName(name string) (Tag, bool) {
	t, ok := tagsByName[name]
	return t, ok
}

// Builtin attaches a tag to an inner type.
type Builtin struct {
	Tag   Tag
	Inner Ty
}

func Tagged(tag Tag, inner Ty) Ty { return &Builtin{Tag: tag, Inner: inner} }

// Base unwraps builtin tags so callers can switch on structure.
func Base(t Ty) Ty { return t.base() }

// TagsOf collects the tags wrapped around t, outermost first.
func TagsOf(t Ty) []Tag {
	var tags []Tag
	for {
		b, ok := t.(*Builtin)
		if !ok {
			return tags
		}
		tags = append(tags, b.Tag)
		t = b.Inner
	}
}

func (t *Builtin) String() string { return "[" + t.Tag.String() + "] " + t.Inner.String() }
func (t *Builtin) Hash() uint64 {
	h := uint64(0xc0ffee0000000017)
	return (h*31+uint64(t.Tag))*31 + t.Inner.Hash()
}
func (t *Builtin) Flags() Flags { return t.Inner.Flags() }
func (t *Builtin) base() Ty     { return t.Inner.base() }
