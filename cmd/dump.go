package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/incontrol-io/incontrol/vehicle/jlr"
	"github.com/olekukonko/tablewriter"
)

type dumper struct {
	len int
}

func (d *dumper) Header(name string) {
	fmt.Println(name)
	fmt.Println(strings.Repeat("-", len(name)))
}

// DumpWithHeader fetches the vehicle's live state and renders it as a table
func (d *dumper) DumpWithHeader(name string, v *jlr.Vehicle) {
	if d.len > 1 {
		d.Header(name)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Value"})
	table.SetAutoWrapText(false)

	if attributes, err := v.Attributes(); err != nil {
		fmt.Printf("Attributes: %v\n", err)
	} else {
		table.Append([]string{"Nickname", attributes.Nickname})
		table.Append([]string{"Registration", attributes.Registration})
		table.Append([]string{"Brand", attributes.VehicleBrand})
		table.Append([]string{"Model", attributes.VehicleType})
		table.Append([]string{"Fuel", attributes.FuelType})
		table.Append([]string{"Powertrain", attributes.PowerTrainType})
	}

	if position, err := v.Position(); err != nil {
		fmt.Printf("Position: %v\n", err)
	} else if position != nil {
		table.Append([]string{"Position", fmt.Sprintf("%.6f,%.6f", position.Latitude, position.Longitude)})
	}

	if status, err := v.Status(); err != nil {
		fmt.Printf("Status: %v\n", err)
	} else {
		table.Append([]string{"Status time", status.LastUpdated.String()})

		for _, m := range []map[string]string{status.Core, status.EV} {
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			for _, k := range keys {
				table.Append([]string{k, m[k]})
			}
		}
	}

	table.Render()

	if d.len > 1 {
		fmt.Println()
	}
}
