package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `census tracks who occupies which bed across residential-care centers.

Core concepts:
- Resident: a person under care. Admission status is derived: a resident with an open assignment is ADMITTED, anyone else is DISCHARGED.
- Bed: one slot inside a room. A bed is OCCUPIED while an open assignment references it, OUT_OF_SERVICE when flagged, VACANT otherwise.
- Assignment: links one resident to one bed for a time interval. Open (no end time) means current occupancy. Assignments are append-only; nothing is deleted.
- Capacity: each room has a fixed capacity; open assignments in a room never exceed it.

Rules of engagement:
1) Orient: call occupancy_report for the center-wide picture, list_vacant_beds to find free slots.
2) Register before admitting: register_resident creates the record; admit_resident places them in a bed.
3) Moves are transfers: never discharge-and-readmit to move someone; transfer_resident does both halves atomically.
4) Conflicts are normal: admissions racing for the last slot in a room fail with a capacity or conflict error. Re-check list_vacant_beds and retry with a different bed.
5) Timestamps are RFC 3339 and optional; omitted means now.

Docs:
- census://docs/occupancy (occupancy model and error taxonomy)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "census://docs/occupancy",
		Name:        "occupancy_docs",
		Title:       "Occupancy model",
		Description: "How assignments, capacity, and the error taxonomy work.",
		Content: `# Occupancy Model

## Assignments

An assignment links one resident to one bed for a time interval. An open
assignment (no end time) denotes current occupancy. The ledger is append-only:
admissions open assignments, discharges and transfers close them, nothing is
ever deleted or rewritten.

Two exclusivity rules hold at all times:

- A bed has at most one open assignment.
- A resident has at most one open assignment.

## Capacity

Each room has a fixed capacity. The number of open assignments across a room's
beds never exceeds it, even under concurrent admissions: the capacity check and
the assignment insert happen in one storage transaction, so a racing admit
either fully succeeds or fully fails.

## Errors

- capacity exceeded: the destination room is full. Pick another room.
- conflict / duplicate assignment: a concurrent write won the bed, or the
  resident is already admitted. Re-read state before retrying.
- bed out of service: the bed is flagged unusable. It does not count as vacant.
- no active assignment: discharge or transfer of a resident who is not admitted.
  Discharge is not idempotent; a second discharge fails with this error.
- invalid interval: an operation would close an assignment before it started.

## Transfers

A transfer closes the current assignment and opens a new one at the same
timestamp, atomically. Within-room transfers work even when the room is full,
because the close and the open are part of the same transaction.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
