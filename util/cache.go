package util

import (
	"sync"
)

// Cache is a data store for the most recent value of each broadcast parameter
type Cache struct {
	sync.Mutex
	val map[string]Param
}

// NewCache creates cache
func NewCache() *Cache {
	return &Cache{
		val: make(map[string]Param),
	}
}

// Run adds input channel's values to cache
func (c *Cache) Run(in <-chan Param) {
	log := NewLogger("cache")

	for p := range in {
		log.TRACE.Printf("%s: %v", p.UniqueID(), p.Val)
		c.Add(p.UniqueID(), p)
	}
}

// State provides a structured copy of the cached values, grouped by vehicle
func (c *Cache) State() map[string]interface{} {
	c.Lock()
	defer c.Unlock()

	res := make(map[string]interface{})
	vehicles := make(map[string]map[string]interface{})

	for _, param := range c.val {
		if param.Vin == nil {
			res[param.Key] = param.Val
			continue
		}

		v, ok := vehicles[*param.Vin]
		if !ok {
			v = make(map[string]interface{})
			vehicles[*param.Vin] = v
		}
		v[param.Key] = param.Val
	}

	if len(vehicles) > 0 {
		res["vehicles"] = vehicles
	}

	return res
}

// All provides a copy of the cached values
func (c *Cache) All() []Param {
	c.Lock()
	defer c.Unlock()

	copy := make([]Param, 0, len(c.val))
	for _, val := range c.val {
		copy = append(copy, val)
	}

	return copy
}

// Add entry to cache
func (c *Cache) Add(key string, param Param) {
	c.Lock()
	defer c.Unlock()

	c.val[key] = param
}

// Get entry from cache
func (c *Cache) Get(key string) Param {
	c.Lock()
	defer c.Unlock()

	if val, ok := c.val[key]; ok {
		return val
	}

	return Param{}
}
