// Package sfgkey names the singleflight groups of the orchestrator read
// side.
package sfgkey

const (
	delimiter           = "_"
	keyGetStorageNode   = "getsn"
	keyListStorageNodes = "listsns"
	keyClusterSettings  = "settings"
	keyStatus           = "status"
)

func GetStorageNodeKey(addr string) string {
	return keyGetStorageNode + delimiter + addr
}

func ListStorageNodesKey() string {
	return keyListStorageNodes
}

func ClusterSettingsKey() string {
	return keyClusterSettings
}

func StatusKey() string {
	return keyStatus
}
