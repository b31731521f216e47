package reactive

func (n *subscriberNode) markDirty() {
	n.mu.Lock()
	n.flags |= FlagDirty
	n.mu.Unlock()
}
