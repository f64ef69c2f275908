package vocab

// Built-in vocabulary tables. The order of every slice here is load-bearing:
// substitutions are applied top to bottom and keyword tables resolve ties by
// position, so entries must stay grouped from specific to generic.

var knownDrugs = []string{
	// Antibiotics
	"erythromycin", "amoxicillin", "amoxicillin-clavulanic acid", "augmentin",
	"azithromycin", "ciprofloxacin", "levofloxacin", "cephalexin", "doxycycline",
	"metronidazole", "norfloxacin", "cefixime", "nitrofurantoin",

	// Analgesics and NSAIDs
	"paracetamol", "acetaminophen", "ibuprofen", "aspirin", "diclofenac",
	"naproxen", "mefenamic acid", "indomethacin",

	// Cough and cold
	"cough syrup", "dextromethorphan", "promethazine", "codeine", "terbutaline",
	"levosalbutamol", "salbutamol", "albuterol", "bromhexine", "guaifenesin",
	"benzydamine", "strepsils",

	// Antihistamines
	"antihistamine", "cetirizine", "levocetirizine", "loratadine", "fexofenadine",
	"meclizine", "chlorpheniramine", "pheniramine", "diphenhydramine",

	// Gastrointestinal
	"antacid", "omeprazole", "pantoprazole", "ranitidine", "famotidine",
	"domperidone", "metoclopramide", "ondansetron", "loperamide", "sucralfate",
	"probiotic", "potassium citrate",

	// Cardiovascular
	"lisinopril", "enalapril", "ramipril", "amlodipine", "nifedipine",
	"metoprolol", "atenolol", "bisoprolol", "atorvastatin", "simvastatin",
	"losartan", "valsartan", "spironolactone", "furosemide", "hydrochlorothiazide",
	"verapamil", "warfarin",

	// Decongestants
	"phenylephrine", "pseudoephedrine", "oxymetazoline", "xylometazoline",

	// Vitamins and minerals
	"vitamin", "vitamin-c", "vitamin-d", "vitamin-b12", "calcium", "iron",
	"zinc", "multivitamin", "ascorbic acid",

	// Antifungals
	"fluconazole", "ketoconazole", "miconazole", "clotrimazole", "terbinafine",

	// Anti-inflammatory
	"corticosteroid", "dexamethasone", "methylprednisolone", "prednisone",
	"hydrocortisone", "betamethasone",

	// Respiratory
	"bronchodilator", "inhaler", "montelukast", "theophylline",

	// Thyroid
	"levothyroxine", "liothyronine",

	// Diabetes
	"metformin", "glipizide", "glyburide", "sitagliptin", "insulin",

	// Topical antibacterials
	"antibiotic ointment", "neomycin", "bacitracin", "polymyxin",
}

var dangerousCombinations = []rawPair{
	{"aspirin", "ibuprofen", "Both are NSAIDs - avoid together"},
	{"ibuprofen", "diclofenac", "Both are NSAIDs - avoid together"},
	{"metoprolol", "verapamil", "Both lower heart rate - high risk"},
	{"atorvastatin", "simvastatin", "Both are statins - avoid together"},
	{"lisinopril", "potassium citrate", "Risk of hyperkalemia - monitor"},
	{"warfarin", "aspirin", "Increased bleeding risk"},
	{"fluconazole", "domperidone", "Risk of QT prolongation"},
}

// dosePatterns are the recognized dose-string shapes. A dose that matches
// none of these is flagged by the validator as unclear, not rejected.
var dosePatterns = []string{
	`\d+\s*mg`,
	`\d+\s*ml`,
	`\d+\s*mcg`,
	`\d+\s*gm`,
	`\d+\s*iu`,
	`\d+\s*unit`,
	`\d+\s*tablet`,
	`\d+\s*capsule`,
	`\d+\s*drop`,
	`\d+\s*spray`,
	`\d+\s*puff`,
}

// deliveryFormats strip trailing dosage-form words from extracted drug names.
// More specific multi-word forms come first so "oral paste" wins over "paste".
var deliveryFormats = []rawFormat{
	{`(?i)\s+oral\s+paste\s*$`, "paste"},
	{`(?i)\s+oral\s+solution\s*$`, "solution"},
	{`(?i)\s+oral\s+suspension\s*$`, "suspension"},
	{`(?i)\s+tablets?\s*$`, "tablet"},
	{`(?i)\s+capsules?\s*$`, "capsule"},
	{`(?i)\s+sprays?\s*$`, "spray"},
	{`(?i)\s+syrups?\s*$`, "syrup"},
	{`(?i)\s+solution\s*$`, "solution"},
	{`(?i)\s+suspension\s*$`, "suspension"},
	{`(?i)\s+drops?\s*$`, "drops"},
	{`(?i)\s+lozenges?\s*$`, "lozenge"},
	{`(?i)\s+powder\s*$`, "powder"},
	{`(?i)\s+injectable\s*$`, "injectable"},
	{`(?i)\s+cream\s*$`, "cream"},
	{`(?i)\s+ointment\s*$`, "ointment"},
	{`(?i)\s+paste\s*$`, "paste"},
	{`(?i)\s+vials?\s*$`, "vial"},
	{`(?i)\s+liquid\s*$`, "liquid"},
	{`(?i)\s+pills?\s*$`, "pill"},
}

// phoneticCorrections map known speech-to-text distortions of drug names to
// the canonical generic name. Anchored entries fix single-token artifacts
// produced by the extraction model itself; word-boundary entries fix
// phoneme-level transcription errors.
var phoneticCorrections = []rawSub{
	{`(?i)^tess$`, "sucralfate"},
	{`(?i)^sucral$`, "sucralfate"},
	{`(?i)^sucralf\w*$`, "sucralfate"},
	{`(?i)^cipro$`, "ciprofloxacin"},

	{`(?i)\blopassium\b`, "potassium citrate"},
	{`(?i)\blopa\s+potassium\b`, "potassium citrate"},
	{`(?i)\bbento\s+brazul\b`, "pantoprazole"},
	{`(?i)\bonden\s+citron\b`, "ondansetron"},
	{`(?i)\banti[- ]?acid\s+drink\b`, "antacid"},
	{`(?i)\bparacetal\b`, "paracetamol"},
	{`(?i)\bparacetamole\b`, "paracetamol"},
	{`(?i)\baspireen\b`, "aspirin"},
	{`(?i)\basprine?\b`, "aspirin"},
	{`(?i)\bamoxysilan\b`, "amoxicillin"},
	{`(?i)\bamoxycillin\b`, "amoxicillin"},
	{`(?i)\bamoxyl?in\b`, "amoxicillin"},
	{`(?i)\bazithro\b`, "azithromycin"},
	{`(?i)\bciprofloxacine\b`, "ciprofloxacin"},
	{`(?i)\blevoceti\b`, "levocetirizine"},
	{`(?i)\blevosidazine\b`, "levocetirizine"},
	{`(?i)\blevocitirizine\b`, "levocetirizine"},
	{`(?i)\bomeprazol\b`, "omeprazole"},
	{`(?i)\bomerazole\b`, "omeprazole"},
	{`(?i)\bdomeperidone\b`, "domperidone"},
	{`(?i)\bbenzimidine\b`, "benzydamine"},
	{`(?i)\bbenzodiazine\b`, "benzydamine"},
	{`(?i)\btrepsils\b`, "strepsils"},
	{`(?i)\berytho\s+mice\s+in\b`, "erythromycin"},
	{`(?i)\bretromyzen\b`, "erythromycin"},
	{`(?i)\berythromicin\b`, "erythromycin"},
	{`(?i)\berythomycin\b`, "erythromycin"},
	{`(?i)\bermycin\b`, "erythromycin"},
	{`(?i)\bmetaphormion\b`, "metformin"},
	{`(?i)\bmetphormion\b`, "metformin"},
	{`(?i)\bciproflo\b`, "ciprofloxacin"},
}

// brandGenericMap substitutes recognized brand tokens with the generic name.
var brandGenericMap = []rawSub{
	{`(?i)\bstayhappi\b`, "nitrofurantoin"},
	{`(?i)\bstay\s*happi\b`, "nitrofurantoin"},
	{`(?i)\buristat\b`, "nitrofurantoin"},
	{`(?i)\bciprobiotic\b`, "probiotic"},
	{`(?i)\baugmentin\b`, "amoxicillin-clavulanic acid"},
}

// medicalTermCorrections repair transcription artifacts in full transcript
// text before keyword extraction runs on it.
var medicalTermCorrections = []rawSub{
	{`(?i)\bfrangitis\b`, "pharyngitis"},
	{`(?i)\bfrench\s+dices?\b`, "pharyngitis"},
	{`(?i)\bfirennets\b`, "pharyngitis"},
	{`(?i)\bpharangitis\b`, "pharyngitis"},
	{`(?i)\bparagenesis\b`, "pharyngitis"},
	{`(?i)\bparakinesis\b`, "pharyngitis"},
	{`(?i)\bbrankitis\b`, "bronchitis"},
	{`(?i)\binflection\b`, "infection"},
	{`(?i)\binfraction\b`, "infection"},
	{`(?i)\bbacterial\s+fracture\b`, "bacterial infection"},
	{`(?i)\bthroat\s+infraction\b`, "throat infection"},
	{`(?i)\bretromyzen\b`, "erythromycin"},
	{`(?i)\bantibiotic\s+risk\b`, "antibiotics"},
}

var complaintKeywords = []Keyword{
	{"difficulty breathing", "difficulty breathing", 1},
	{"difficulty swallowing", "difficulty swallowing", 1},
	{"throat pain", "throat pain", 2},
	{"fever", "fever", 2},
	{"cough", "cough", 2},
	{"infection", "infection", 3},
	{"discomfort", "discomfort", 3},
	{"pain", "pain", 4},
}

var diagnosisKeywords = []Keyword{
	{"pharyngitis", "acute pharyngitis", 1},
	{"bacterial throat infection", "bacterial throat infection", 1},
	{"throat infection", "bacterial throat infection", 1},
	{"bacterial infection", "bacterial infection", 2},
	{"infection", "infection", 3},
}

var adviceRules = []AdviceRule{
	{[]string{"after food", "stomach", "discomfort"}, "Take medicine after food to avoid stomach discomfort"},
	{[]string{"course", "complete"}, "Complete the full course of antibiotics"},
	{[]string{"plenty", "warm fluid", "warm water"}, "Drink plenty of warm fluids"},
	{[]string{"gargle"}, "Do warm salt water gargles 3-4 times a day"},
	{[]string{"cold drink", "cold drinks"}, "Avoid very cold drinks"},
	{[]string{"spicy"}, "Avoid spicy food"},
	{[]string{"oily"}, "Avoid oily food"},
	{[]string{"rest", "voice"}, "Rest your voice as much as possible"},
	{[]string{"side effect", "nausea"}, "Watch for side effects like nausea or upset stomach"},
	{[]string{"severe", "diarrhea"}, "Contact doctor if you develop severe diarrhea, vomiting, rash, or difficulty breathing"},
	{[]string{"follow", "review"}, "Come for a review follow up after 5 days or earlier if symptoms do not improve"},
	{[]string{"fever persist", "persists"}, "If fever persists beyond 2-3 days, seek medical attention"},
}
