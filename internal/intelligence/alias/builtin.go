package alias

// BuiltinEntry is one row of the built-in alias table: a canonical chemical
// name and the synonyms it is known by. Several entries intentionally carry
// no synonyms; they still register the canonical spelling.
type BuiltinEntry struct {
	MainName string
	Aliases  []string
}

// builtinTable ships with the binary. Keep it sorted by main name.
var builtinTable = []BuiltinEntry{
	{MainName: "Acetic Acid", Aliases: []string{"Ethanoic Acid", "Glacial Acetic Acid", "Methanecarboxylic Acid", "Vinegar Acid"}},
	{MainName: "Acetone", Aliases: []string{"2-propanone", "Dimethyl Ketone", "Dimethylformaldehyde", "Pyroacetic Acid"}},
	{MainName: "Acetonitrile", Aliases: []string{"Methyl Cyanide", "Cyanomethane", "Ethanenitrile"}},
	{MainName: "Acetylene", Aliases: []string{"Ethyne", "Ethine"}},
	{MainName: "Aluminum, Diethyl Ether", Aliases: []string{}},
	{MainName: "Ammonia", Aliases: []string{"Anhydrous Ammonia", "Azane"}},
	{MainName: "Ammonium Hydroxide", Aliases: []string{"Aqueous Ammonia", "Ammonia Water", "Ammonia Solution"}},
	{MainName: "Ammonium Nitrate", Aliases: []string{}},
	{MainName: "Benzene", Aliases: []string{"Benzol", "Cyclohexatriene", "Phenyl Hydride"}},
	{MainName: "Bleach", Aliases: []string{"Sodium Hypochlorite Solution", "Liquid Bleach"}},
	{MainName: "Bromine", Aliases: []string{}},
	{MainName: "Butane", Aliases: []string{"n-Butane", "Butyl Hydride"}},
	{MainName: "Calcium Carbide", Aliases: []string{}},
	{MainName: "Calcium Hypochlorite", Aliases: []string{"Chlorinated Lime", "Bleaching Powder"}},
	{MainName: "Carbon Disulfide", Aliases: []string{"Carbon Bisulfide", "Dithiocarbonic Anhydride"}},
	{MainName: "Carbon Monoxide", Aliases: []string{"Carbonic Oxide"}},
	{MainName: "Chlorine", Aliases: []string{"Chlorine Gas", "Molecular Chlorine"}},
	{MainName: "Chloroform", Aliases: []string{"Trichloromethane", "Methyl Trichloride"}},
	{MainName: "Cyclohexane", Aliases: []string{"Hexahydrobenzene", "Hexamethylene"}},
	{MainName: "Diethyl Ether", Aliases: []string{"Ether", "Ethyl Ether", "Ethoxyethane", "Sulfuric Ether"}},
	{MainName: "Dimethyl Sulfoxide", Aliases: []string{"DMSO", "Methyl Sulfoxide"}},
	{MainName: "Ethanol", Aliases: []string{"Ethyl Alcohol", "Grain Alcohol", "Alcohol"}},
	{MainName: "Ethyl Acetate", Aliases: []string{"Ethyl Ethanoate", "Acetic Ester", "Acetic Ether", "Vinegar Naphtha"}},
	{MainName: "Ethylene Glycol", Aliases: []string{"Ethane-1,2-diol", "Monoethylene Glycol", "Glycol"}},
	{MainName: "Formaldehyde", Aliases: []string{"Methanal", "Formalin", "Methyl Aldehyde"}},
	{MainName: "Gasoline", Aliases: []string{"Petrol", "Motor Spirit"}},
	{MainName: "Hexane", Aliases: []string{"n-Hexane", "Hexyl Hydride"}},
	{MainName: "Hydrazine", Aliases: []string{"Diamine", "Diazane"}},
	{MainName: "Hydrochloric Acid", Aliases: []string{"Muriatic Acid", "Hydrogen Chloride Solution", "Spirits of Salt"}},
	{MainName: "Hydrofluoric Acid", Aliases: []string{"Fluorohydric Acid", "Hydrogen Fluoride Solution"}},
	{MainName: "Hydrogen", Aliases: []string{}},
	{MainName: "Hydrogen Peroxide", Aliases: []string{"Dihydrogen Dioxide", "Hydroperoxide", "Peroxide"}},
	{MainName: "Hydrogen Sulfide", Aliases: []string{"Sulfane", "Sewer Gas", "Hydrosulfuric Acid"}},
	{MainName: "Isopropyl Alcohol", Aliases: []string{"Isopropanol", "2-propanol", "Rubbing Alcohol", "IPA"}},
	{MainName: "Kerosene", Aliases: []string{"Paraffin Oil", "Lamp Oil"}},
	{MainName: "Lithium", Aliases: []string{}},
	{MainName: "Mercury", Aliases: []string{"Quicksilver", "Hydrargyrum"}},
	{MainName: "Methane", Aliases: []string{"Marsh Gas", "Natural Gas"}},
	{MainName: "Methanol", Aliases: []string{"Methyl Alcohol", "Wood Alcohol", "Carbinol", "Wood Spirit"}},
	{MainName: "Methyl Ethyl Ketone", Aliases: []string{"2-butanone", "Butanone", "MEK"}},
	{MainName: "Nitric Acid", Aliases: []string{"Aqua Fortis", "Azotic Acid"}},
	{MainName: "Nitrogen", Aliases: []string{}},
	{MainName: "Phenol", Aliases: []string{"Carbolic Acid", "Hydroxybenzene", "Phenylic Acid"}},
	{MainName: "Phosphoric Acid", Aliases: []string{"Orthophosphoric Acid"}},
	{MainName: "Potassium Hydroxide", Aliases: []string{"Caustic Potash", "Potash Lye"}},
	{MainName: "Potassium Permanganate", Aliases: []string{"Permanganate of Potash", "Condy's Crystals"}},
	{MainName: "Propane", Aliases: []string{"Dimethylmethane", "LPG"}},
	{MainName: "Sodium", Aliases: []string{}},
	{MainName: "Sodium Chloride", Aliases: []string{"Salt", "Table Salt", "Halite"}},
	{MainName: "Sodium Cyanide", Aliases: []string{"Cyanide of Sodium"}},
	{MainName: "Sodium Hydroxide", Aliases: []string{"Caustic Soda", "Lye", "Sodium Hydrate"}},
	{MainName: "Sodium Hypochlorite", Aliases: []string{"Hypochlorous Acid Sodium Salt"}},
	{MainName: "Styrene", Aliases: []string{"Vinylbenzene", "Phenylethylene", "Ethenylbenzene"}},
	{MainName: "Sulfur Dioxide", Aliases: []string{"Sulfurous Anhydride", "Sulfurous Oxide"}},
	{MainName: "Sulfuric Acid", Aliases: []string{"Oil of Vitriol", "Battery Acid", "Hydrogen Sulfate"}},
	{MainName: "Tetrahydrofuran", Aliases: []string{"THF", "Oxolane", "Butylene Oxide"}},
	{MainName: "Toluene", Aliases: []string{"Methylbenzene", "Toluol", "Phenylmethane"}},
	{MainName: "Turpentine", Aliases: []string{"Oil of Turpentine", "Spirits of Turpentine"}},
	{MainName: "Vinyl Chloride", Aliases: []string{"Chloroethene", "Chloroethylene"}},
	{MainName: "White Phosphorus", Aliases: []string{"Yellow Phosphorus"}},
	{MainName: "Xylene", Aliases: []string{"Xylol", "Dimethylbenzene"}},
}

// BuiltinTable returns a copy of the built-in alias table.
func BuiltinTable() []BuiltinEntry {
	out := make([]BuiltinEntry, len(builtinTable))
	for i, e := range builtinTable {
		out[i] = BuiltinEntry{MainName: e.MainName, Aliases: append([]string(nil), e.Aliases...)}
	}
	return out
}
