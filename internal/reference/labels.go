// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package reference

// basic2021Labels maps the 2021 basic classification code to its published label.
var basic2021Labels = map[int]string{
	-2: "Not applicable, not in Carnegie universe (not accredited or nondegree-granting)",
	1:  "Associate's Colleges: High Transfer-High Traditional",
	2:  "Associate's Colleges: High Transfer-Mixed Traditional/Nontraditional",
	3:  "Associate's Colleges: High Transfer-High Nontraditional",
	4:  "Associate's Colleges: Mixed Transfer/Career & Technical-High Traditional",
	5:  "Associate's Colleges: Mixed Transfer/Career & Technical-Mixed Traditional/Nontraditional",
	6:  "Associate's Colleges: Mixed Transfer/Career & Technical-High Nontraditional",
	7:  "Associate's Colleges: High Career & Technical-High Traditional",
	8:  "Associate's Colleges: High Career & Technical-Mixed Traditional/Nontraditional",
	9:  "Associate's Colleges: High Career & Technical-High Nontraditional",
	10: "Special Focus Two-Year: Health Professions",
	11: "Special Focus Two-Year: Technical Professions",
	12: "Special Focus Two-Year: Arts & Design",
	13: "Special Focus Two-Year: Other Fields",
	14: "Baccalaureate/Associate's Colleges: Associate's Dominant",
	15: "Doctoral Universities: Very High Research Activity",
	16: "Doctoral Universities: High Research Activity",
	17: "Doctoral/Professional Universities",
	18: "Master's Colleges & Universities: Larger Programs",
	19: "Master's Colleges & Universities: Medium Programs",
	20: "Master's Colleges & Universities: Small Programs",
	21: "Baccalaureate Colleges: Arts & Sciences Focus",
	22: "Baccalaureate Colleges: Diverse Fields",
	23: "Baccalaureate/Associate's Colleges: Mixed Baccalaureate/Associate's",
	24: "Special Focus Four-Year: Faith-Related Institutions",
	25: "Special Focus Four-Year: Medical Schools & Centers",
	26: "Special Focus Four-Year: Other Health Professions Schools",
	27: "Special Focus Four-Year: Research Institution",
	28: "Special Focus Four-Year: Engineering and Other Technology-Related Schools",
	29: "Special Focus Four-Year: Business & Management Schools",
	30: "Special Focus Four-Year: Arts, Music & Design Schools",
	31: "Special Focus Four-Year: Law Schools",
	32: "Special Focus Four-Year: Other Special Focus Institutions",
	33: "Tribal Colleges and Universities",
}

// researchDesignation2025Labels maps the 2025 Research Activity Designation code.
// Newer releases of the file carry the label text itself; both forms are accepted.
var researchDesignation2025Labels = map[int]string{
	1: "R1: Very High Research Spending and Doctorate Production",
	2: "R2: High Research Spending and Doctorate Production",
	3: "Research Colleges and Universities",
}
