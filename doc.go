// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package mavlink implements a runtime-configurable codec for the MAVLink
// v1 and v2 telemetry wire protocol. Given one or more XML dialect
// documents, Initialize compiles them into a process-wide Catalog; Frame's
// TryParse/TryParseStream decode raw bytes against that Catalog, and
// Frame.ToBytes encodes a Frame back into wire bytes.
//
// A typical caller initializes once at startup:
//
//	err := mavlink.Initialize("common", &mavlink.Options{
//		Resolver: mavlink.FileResolver("./dialects"),
//	})
//
// and then decodes datagrams or stream fragments:
//
//	f := &mavlink.Frame{}
//	if f.TryParse(datagram) {
//		fmt.Println(f.MessageID, f.Fields())
//	}
package mavlink
