package versioning

// historyCache holds the parsed history of one resource instance.
type historyCache struct {
	versions []Version
	valid    bool
}

func (c *historyCache) get() ([]Version, bool) {
	if !c.valid {
		return nil, false
	}
	out := make([]Version, len(c.versions))
	copy(out, c.versions)
	return out, true
}

func (c *historyCache) put(versions []Version) {
	c.versions = versions
	c.valid = true
}

func (c *historyCache) invalidate() {
	c.versions = nil
	c.valid = false
}
