package permission

// CapabilityKind tags the two halves of the capability space.
type CapabilityKind int

const (
	// CapabilityModule is access to a whole module, granted by role.
	CapabilityModule CapabilityKind = iota + 1
	// CapabilityAction is a single action, granted by permission strings.
	CapabilityAction
)

func (k CapabilityKind) String() string {
	switch k {
	case CapabilityModule:
		return "module"
	case CapabilityAction:
		return "action"
	}
	return "unknown"
}

// Capability is the single thing every authorization question asks about.
// Exactly one of Module or Action is set, matching Kind.
type Capability struct {
	Kind   CapabilityKind
	Module ModuleKey
	Action Permission
}

func ModuleCapability(m ModuleKey) Capability {
	return Capability{Kind: CapabilityModule, Module: m}
}

func ActionCapability(p Permission) Capability {
	return Capability{Kind: CapabilityAction, Action: p}
}

func (c Capability) String() string {
	switch c.Kind {
	case CapabilityModule:
		return "module:" + string(c.Module)
	case CapabilityAction:
		return "action:" + string(c.Action)
	}
	return "unknown"
}
