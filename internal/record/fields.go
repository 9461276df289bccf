package record

// Field describes one logical identity field that exists in both the
// document store and the tracker's custom fields. The accessor pairs make
// the mapping a compile-checked table instead of a runtime string lookup.
type Field struct {
	// Name is the logical field name, which doubles as the document key.
	Name string

	// Title marks name fields whose value is capitalized on write.
	Title bool

	FromPerson func(*Person) string
	SetPerson  func(*Person, string)

	FromWorkItem func(*WorkItem) string
	SetWorkItem  func(*WorkItem, string)
}

// IdentityFields is the single mapping table between the Person document
// and the Work Item custom fields. Both consolidation directions consume
// it; order is the order fields are applied and reported in.
func IdentityFields() []Field {
	return []Field{
		{
			Name:         "firstname",
			Title:        true,
			FromPerson:   func(p *Person) string { return p.FirstName },
			SetPerson:    func(p *Person, v string) { p.FirstName = v },
			FromWorkItem: func(w *WorkItem) string { return w.FirstName },
			SetWorkItem:  func(w *WorkItem, v string) { w.FirstName = v },
		},
		{
			Name:         "lastname",
			Title:        true,
			FromPerson:   func(p *Person) string { return p.LastName },
			SetPerson:    func(p *Person, v string) { p.LastName = v },
			FromWorkItem: func(w *WorkItem) string { return w.LastName },
			SetWorkItem:  func(w *WorkItem, v string) { w.LastName = v },
		},
		{
			Name:         "username",
			FromPerson:   func(p *Person) string { return p.Username },
			SetPerson:    func(p *Person, v string) { p.Username = v },
			FromWorkItem: func(w *WorkItem) string { return w.Username },
			SetWorkItem:  func(w *WorkItem, v string) { w.Username = v },
		},
		{
			Name:         "email",
			FromPerson:   func(p *Person) string { return p.Email },
			SetPerson:    func(p *Person, v string) { p.Email = v },
			FromWorkItem: func(w *WorkItem) string { return w.Email },
			SetWorkItem:  func(w *WorkItem, v string) { w.Email = v },
		},
		{
			Name:         "telephone",
			FromPerson:   func(p *Person) string { return p.Telephone },
			SetPerson:    func(p *Person, v string) { p.Telephone = v },
			FromWorkItem: func(w *WorkItem) string { return w.Telephone },
			SetWorkItem:  func(w *WorkItem, v string) { w.Telephone = v },
		},
		{
			Name:         "git",
			FromPerson:   func(p *Person) string { return p.Git },
			SetPerson:    func(p *Person, v string) { p.Git = v },
			FromWorkItem: func(w *WorkItem) string { return w.Git },
			SetWorkItem:  func(w *WorkItem, v string) { w.Git = v },
		},
		{
			Name:         "public_key",
			FromPerson:   func(p *Person) string { return p.PublicKey },
			SetPerson:    func(p *Person, v string) { p.PublicKey = v },
			FromWorkItem: func(w *WorkItem) string { return w.PublicKey },
			SetWorkItem:  func(w *WorkItem, v string) { w.PublicKey = v },
		},
	}
}
