// Package provisioning holds the shared vocabulary of the provisioning
// workflows: per-student outcome records, the progress observer interface,
// and account-name derivation.
//
// State lives only in the cloud provider's resource tags; every workflow
// rediscovers resources by tag query, so these types carry no persistent
// identity beyond the roster email and the derived account name.
package provisioning
