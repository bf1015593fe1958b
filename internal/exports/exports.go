// Package exports assembles the operator-facing output map of a run.
// Values derived from engine-assigned attributes stay deferred; secret
// parameters surface only as "configured" markers.
package exports

import (
	"fmt"
	"sort"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// Map collects export keys. Values are either plain inputs or a
// pulumi.Map nested exactly one level; deeper nesting is rejected at
// publish time.
type Map map[string]pulumi.Input

// Set records a single export value.
func (m Map) Set(key string, v pulumi.Input) Map {
	m[key] = v
	return m
}

// Publish validates the nesting constraint and hands every key to the
// engine's export surface in sorted order.
func (m Map) Publish(ctx *pulumi.Context) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if nested, ok := m[k].(pulumi.Map); ok {
			for nk, nv := range nested {
				if _, deep := nv.(pulumi.Map); deep {
					return fmt.Errorf("export %q: nested value %q exceeds one level of nesting", k, nk)
				}
			}
		}
		ctx.Export(k, m[k])
	}
	return nil
}

// SecretMarkers returns the export block for secret parameters: one
// boolean per secret, never the value itself.
func SecretMarkers(names ...string) pulumi.Map {
	out := pulumi.Map{}
	for _, n := range names {
		out[n+"_configured"] = pulumi.Bool(true)
	}
	return out
}

// URL is the deferred website URL for a public address.
func URL(ip pulumi.StringOutput) pulumi.StringOutput {
	return ip.ApplyT(func(v string) string {
		return fmt.Sprintf("http://%s", v)
	}).(pulumi.StringOutput)
}

// SSHCommand is the deferred ssh invocation for a public address.
func SSHCommand(ip pulumi.StringOutput, keyFile string) pulumi.StringOutput {
	return ip.ApplyT(func(v string) string {
		return fmt.Sprintf("ssh -i %s ec2-user@%s", keyFile, v)
	}).(pulumi.StringOutput)
}

// URLs maps each public address to its deferred website URL.
func URLs(ips ...pulumi.StringOutput) pulumi.StringArray {
	out := make(pulumi.StringArray, 0, len(ips))
	for _, ip := range ips {
		out = append(out, URL(ip))
	}
	return out
}
