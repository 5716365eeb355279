package dfsclient

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// PrintListing renders a directory listing as an aligned table, matching
// the output a human operator would want from a debug/inspection CLI
// built on this client.
func PrintListing(w io.Writer, entries []FileSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Kind", "Name", "Length", "Replication", "Owner", "Group", "Permission", "ModTime"})

	for _, e := range entries {
		table.Append([]string{
			e.Kind.String(),
			e.BaseName,
			strconv.FormatInt(e.Length, 10),
			strconv.FormatInt(int64(e.Replication), 10),
			e.Owner,
			e.Group,
			fmt.Sprintf("%03o", e.Permission),
			e.ModTime.Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
}

// PrintBlockLocations renders a file's block map, one row per block,
// replicas joined into a single column.
func PrintBlockLocations(w io.Writer, summary FileSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Offset", "Length", "BlockID", "GenStamp", "Replicas"})

	for _, b := range summary.Blocks {
		replicaNames := ""
		for i, r := range b.Replicas {
			if i > 0 {
				replicaNames += ", "
			}
			replicaNames += r.Name
		}
		table.Append([]string{
			strconv.FormatInt(b.Offset, 10),
			strconv.FormatInt(b.Length, 10),
			strconv.FormatUint(b.BlockID, 10),
			strconv.FormatUint(b.GenerationStamp, 10),
			replicaNames,
		})
	}
	table.Render()
}
