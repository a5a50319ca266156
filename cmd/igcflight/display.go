package main

import (
	"fmt"

	"igcflight/flight"
)

// printFlightHeaders prints the metadata extracted from the A/H/I
// records, skipping anything the log did not provide.
func printFlightHeaders(fl *flight.Flight) {
	if fl.FRManufacturerCode != nil {
		fmt.Printf("Manufacturer: %s\n", *fl.FRManufacturerCode)
	}
	if fl.FRUniqueID != nil {
		fmt.Printf("Recorder ID: %s\n", *fl.FRUniqueID)
	}
	if fl.GliderType != nil {
		fmt.Printf("Glider Type: %s\n", *fl.GliderType)
	}
	if fl.CompetitionClass != nil {
		fmt.Printf("Competition Class: %s\n", *fl.CompetitionClass)
	}
	if fl.FRFirmwareVersion != nil {
		fmt.Printf("Firmware Version: %s\n", *fl.FRFirmwareVersion)
	}
	if fl.FRHardwareVersion != nil {
		fmt.Printf("Hardware Version: %s\n", *fl.FRHardwareVersion)
	}
	if fl.FRRecorderType != nil {
		fmt.Printf("Recorder Type: %s\n", *fl.FRRecorderType)
	}
	if fl.FRGPSReceiver != nil {
		fmt.Printf("GPS Receiver: %s\n", *fl.FRGPSReceiver)
	}
	if fl.FRPressureSensor != nil {
		fmt.Printf("Pressure Sensor: %s\n", *fl.FRPressureSensor)
	}
	fmt.Printf("Altitude Source: %s\n", fl.AltSource)
}

// printFix prints one fix with a caller-supplied label prefix.
func printFix(f *flight.Fix, prefix string) {
	fmt.Printf("  %s%06.0f: (%.5f, %.5f), alt=%.0fm, gsp=%.1fkm/h, bearing=%.0f\n",
		prefix, f.RawTime, f.Lat, f.Lon, f.Alt, f.GSp, f.Bearing)
}

// printFlightSummary prints the headers plus takeoff/landing and the
// thermal/glide breakdown. In summary mode only the first and last fix
// are shown; otherwise every fix is printed.
func printFlightSummary(fl *flight.Flight, summary bool) {
	printFlightHeaders(fl)

	if !fl.Valid {
		fmt.Println("Valid: false")
		for _, n := range fl.Notes {
			fmt.Printf("  %s\n", n)
		}
		return
	}

	fmt.Printf("\nFixes (%d total):\n", len(fl.Fixes))
	if summary {
		if len(fl.Fixes) > 0 {
			printFix(fl.Fixes[0], "First: ")
		}
		if len(fl.Fixes) > 1 {
			printFix(fl.Fixes[len(fl.Fixes)-1], "Last:  ")
		}
	} else {
		for _, f := range fl.Fixes {
			printFix(f, "")
		}
	}

	if fl.TakeoffFix == nil {
		fmt.Println("\nNo takeoff detected.")
		for _, n := range fl.Notes {
			fmt.Printf("  %s\n", n)
		}
		return
	}

	fmt.Printf("\nTakeoff at fix #%d, landing at fix #%d\n", fl.TakeoffFix.Index, fl.LandingFix.Index)
	fmt.Printf("Thermals (%d):\n", len(fl.Thermals))
	for i, th := range fl.Thermals {
		fmt.Printf("  [%d] %s\n", i, th)
	}
	fmt.Printf("Glides (%d):\n", len(fl.Glides))
	for i, g := range fl.Glides {
		fmt.Printf("  [%d] %s\n", i, g)
	}

	if len(fl.Notes) > 0 {
		fmt.Println("\nNotes:")
		for _, n := range fl.Notes {
			fmt.Printf("  %s\n", n)
		}
	}
}
