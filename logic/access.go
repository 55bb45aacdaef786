package logic

// Access names a sensor tag such as @memoryCapacity.
type Access uint8

const (
	AccessUnknown Access = iota
	AccessMemoryCapacity
	AccessBufferSize
	AccessDisplayWidth
	AccessDisplayHeight
	AccessOperations
	AccessSize
	AccessX
	AccessY
	AccessType
	AccessName
	AccessEnabled
)

var accessNames = [...]string{
	AccessUnknown:        "unknown",
	AccessMemoryCapacity: "memoryCapacity",
	AccessBufferSize:     "bufferSize",
	AccessDisplayWidth:   "displayWidth",
	AccessDisplayHeight:  "displayHeight",
	AccessOperations:     "operations",
	AccessSize:           "size",
	AccessX:              "x",
	AccessY:              "y",
	AccessType:           "type",
	AccessName:           "name",
	AccessEnabled:        "enabled",
}

func (a Access) String() string {
	if int(a) < len(accessNames) {
		return accessNames[a]
	}
	return "unknown"
}

// ParseAccess resolves a sensor name with or without the leading '@'.
func ParseAccess(name string) (Access, bool) {
	if len(name) > 0 && name[0] == '@' {
		name = name[1:]
	}
	for i, n := range accessNames {
		if i != int(AccessUnknown) && n == name {
			return Access(i), true
		}
	}
	return AccessUnknown, false
}
