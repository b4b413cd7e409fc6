package models

// Station is one position on a production line, able to host operations
// whose machine class it carries.
type Station struct {
	ID           string   `bson:"id" json:"id"`
	Name         string   `bson:"name" json:"name"`
	MachineTools []string `bson:"machine_tools" json:"machine_tools"`
}

// ProductionLine is a capacity-bearing resource made of stations.
type ProductionLine struct {
	ID       string    `bson:"id" json:"id"`
	ClientID string    `bson:"client_id" json:"client_id"`
	Name     string    `bson:"name" json:"name"`
	Stations []Station `bson:"stations" json:"stations"`
}

// Supports reports whether any station on the line carries the machine class.
func (l ProductionLine) Supports(machineTool string) bool {
	for _, st := range l.Stations {
		for _, mt := range st.MachineTools {
			if mt == machineTool {
				return true
			}
		}
	}
	return false
}

// SupportsAll reports whether the line can host every given machine class.
func (l ProductionLine) SupportsAll(machineTools []string) bool {
	for _, mt := range machineTools {
		if !l.Supports(mt) {
			return false
		}
	}
	return true
}
