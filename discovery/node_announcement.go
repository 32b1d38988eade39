package discovery

import "github.com/petrkovac/lightning/lnwire"

// HandleNodeAnnouncement validates and applies ann, staging it if it's an
// orphan awaiting a pending channel announcement (spec §4.3.4).
func (g *Gossiper) HandleNodeAnnouncement(ann *lnwire.NodeAnnouncement) {
	if ann.Features.HasUnknownRequiredFeature() {
		log.Debugf("Rejecting node_announcement for %x: unknown "+
			"required feature bit", ann.NodeID)
		return
	}

	payload := ann.SignedPayload()
	if payload == nil {
		return
	}
	digest := lnwire.DoubleSHA256(payload)
	pubKey, err := ann.NodeID.PubKey()
	if err != nil || !ann.Signature.Verify(digest[:], pubKey) {
		log.Warnf("Rejecting node_announcement for %x: bad signature",
			ann.NodeID)
		return
	}

	node := g.store.LookupNode(ann.NodeID)

	if node == nil {
		if g.stage.StageNodeAnnouncement(ann) {
			log.Debugf("Deferred orphan node_announcement for %x",
				ann.NodeID)
			return
		}
		log.Debugf("Discarding orphan node_announcement for %x: no "+
			"pending channel references it", ann.NodeID)
		return
	}

	if node.HasDescriptor() && int64(ann.Timestamp) <= node.LastTimestamp {
		log.Debugf("Discarding stale node_announcement for %x", ann.NodeID)
		return
	}

	addrs, ok := lnwire.ParseAddresses(ann.Addresses)
	if !ok {
		log.Warnf("Rejecting node_announcement for %x: malformed "+
			"address list", ann.NodeID)
		return
	}

	color := ann.RGBColor
	alias := ann.Alias
	node.Color = &color
	node.Alias = &alias
	node.Addresses = addrs
	node.LastTimestamp = int64(ann.Timestamp)
	node.Raw = ann.Raw

	g.cfg.Broadcaster.ReplaceBroadcast(&node.BroadcastIndex, MsgNodeAnnouncement,
		NodeRoutingKey(ann.NodeID), ann.Raw)
}
