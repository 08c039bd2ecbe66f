package types

// The oracle can resolve the addresses of the replicas.
// It tells the forward address for any replica of the group and
// can tell if a given source address belongs to a replica.
type Oracle interface {
	// Resolve the forward address of the given replica.
	Resolve(id ReplicaID) (string, bool)

	// Identify the replica that owns the given address.
	Identify(address string) (ReplicaID, bool)

	// Size of the group.
	Size() int
}
