// Package cache provides a generic, thread-safe LRU cache.
//
// The slug generator uses it to keep compiled match patterns for recently
// seen base tokens, so bulk generation over similar titles does not compile
// the same regular expression again.
//
//	c := cache.NewLRUCache[string, *regexp.Regexp](256)
//	c.Put("hello-world", re)
//	if re, ok := c.Get("hello-world"); ok {
//		// ...
//	}
package cache
